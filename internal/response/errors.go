package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrAdminDisabled      ErrCode = "ADMIN_LOGIN_DISABLED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Question generation ───────────────────────────────────────────
	ErrQuestionTypeRequired    ErrCode = "QUESTION_TYPE_REQUIRED"
	ErrUnsupportedQuestionType ErrCode = "UNSUPPORTED_QUESTION_TYPE"
	ErrUnsupportedAnswerType   ErrCode = "UNSUPPORTED_ANSWER_TYPE"
	ErrEmptyDocument           ErrCode = "EMPTY_DOCUMENT"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrHistoryDisabled ErrCode = "HISTORY_DISABLED"
	ErrUploadNotFound  ErrCode = "UPLOAD_NOT_FOUND"
	ErrUploadKindWrong ErrCode = "UPLOAD_KIND_MISMATCH"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "이메일 또는 비밀번호가 올바르지 않습니다."
	case ErrAdminDisabled:
		return "관리자 로그인이 설정되지 않았습니다."
	case ErrTokenRequired:
		return "인증 토큰이 필요합니다."
	case ErrTokenInvalid:
		return "인증 토큰이 유효하지 않습니다."
	case ErrTokenExpired:
		return "인증 토큰이 만료되었습니다."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "입력값 검증에 실패했습니다. 입력을 확인해 주세요."
	case ErrInvalidID:
		return "ID 형식이 올바르지 않습니다."
	case ErrInvalidPayload:
		return "요청 본문이 올바르지 않습니다."

	// ─── Question generation ───────────────────────────────────────────
	case ErrQuestionTypeRequired:
		return "문항 유형을 하나 이상 선택하세요."
	case ErrUnsupportedQuestionType:
		return "지원되지 않는 문항 유형입니다."
	case ErrUnsupportedAnswerType:
		return "지원되지 않는 정답 유형입니다."
	case ErrEmptyDocument:
		return "문서로 내보낼 내용이 비어 있습니다."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "요청한 리소스를 찾을 수 없습니다."
	case ErrHistoryDisabled:
		return "생성 기록 저장소가 설정되지 않았습니다."
	case ErrUploadNotFound:
		return "업로드한 파일을 찾을 수 없습니다. 다시 업로드해 주세요."
	case ErrUploadKindWrong:
		return "업로드한 파일의 종류가 요청과 맞지 않습니다."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "파일 업로드가 필요합니다."
	case ErrUnsupportedFile:
		return "지원되지 않는 파일 형식입니다. (wav, mp3, xml, musicxml, mxl)"
	case ErrFileTooLarge:
		return "파일 크기가 허용 한도를 초과했습니다."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "서버 내부 오류가 발생했습니다."
	default:
		return "알 수 없는 오류가 발생했습니다."
	}
}

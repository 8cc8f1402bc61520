package config

type WorkerKeyStruct struct {
	PersistGenerationsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistGenerationsQueue: "persist_generations_queue",
}

package config

type WorkerKeyStruct struct {
	ScoreRecordsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ScoreRecordsQueue: "score_records_queue",
}

package enum

type EngineType string
type OutputFormat string

const (
	EngineWiredTiger EngineType = "wiredtiger"
	EngineBadger     EngineType = "badger"
	EnginePebble     EngineType = "pebble"
	EngineBolt       EngineType = "bolt"
	EngineMemory     EngineType = "memory"
)

var EngineTypes = []EngineType{
	EngineWiredTiger,
	EngineBadger,
	EnginePebble,
	EngineBolt,
	EngineMemory,
}

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

package config

const (
	DefaultProgramID   = "H8bpqAoUgRfHh9ViPqH3wjkAVrgGBeg3sA7q5tECz9HC"
	DefaultMetricsAddr = "127.0.0.1:9464"
	DefaultRPCAddr     = "127.0.0.1:8899"

	NodeConfigFile    = "node.yml"
	RuntimeConfigFile = "runtime.ini"
	DataDirName       = "data"

	DefaultLamportsPerByteYear    = 3480
	DefaultExemptionThreshold     = 2
	DefaultAccountStorageOverhead = 128
)

package cli

// PrintScore is exported for testing
var PrintScore = printScore

// GetIndexConfig is exported for testing
var GetIndexConfig = getIndexConfig

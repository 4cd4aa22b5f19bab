package usecase

// RoundScore is exported for testing
var RoundScore = roundScore

// ExportHeaders is exported for testing
var ExportHeaders = exportHeaders

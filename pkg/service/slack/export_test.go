package slack

// Truncate is exported for testing
var Truncate = truncate

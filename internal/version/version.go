package version

// Version is the boardctl version. Release builds override it with
// -ldflags "-X github.com/boardkit/boardclient/internal/version.Version=...".
var Version = "0.1.0-dev"

package tlunit

// Version information for tlunit.
// Override at build time with:
//
//	go build -ldflags "-X github.com/ZaguanLabs/tlunit.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the application name.
	Name = "tlunit"

	// Description is a short description of the application.
	Description = "Translatable-unit extraction and reinsertion for scripts and data documents"

	// Version is the semantic version of the application.
	Version = "0.1.0"
)

// Build information, set via ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns the version string with the short commit appended
// when known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns a user agent string for HTTP requests.
func UserAgent() string {
	return Name + "/" + Version
}

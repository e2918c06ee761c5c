// Package capability defines the typed records and accessor interfaces that
// site modules implement. Application code (API handlers, the refresh
// worker) talks to backends exclusively through these interfaces, so every
// backend looks the same regardless of which website sits behind it.
package capability

// Name identifies a capability a module can advertise.
type Name string

const (
	BankName     Name = "bank"
	DocumentName Name = "document"
	RecipeName   Name = "recipe"
	JobName      Name = "job"
	WeatherName  Name = "weather"
	PasteName    Name = "paste"
	TorrentName  Name = "torrent"
)

// Has reports whether name is present in the capability set.
func Has(set []Name, name Name) bool {
	for _, n := range set {
		if n == name {
			return true
		}
	}
	return false
}

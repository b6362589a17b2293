package availability

import (
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
)

var zoneDirs = []string{"/usr/share/zoneinfo", "/usr/lib/zoneinfo", "/usr/share/lib/zoneinfo"}

// fallbackZones is served when the host has no zoneinfo tree.
var fallbackZones = []string{
	"Africa/Cairo", "Africa/Johannesburg", "Africa/Lagos", "Africa/Nairobi",
	"America/Anchorage", "America/Bogota", "America/Chicago", "America/Denver",
	"America/Halifax", "America/Los_Angeles", "America/Mexico_City", "America/New_York",
	"America/Phoenix", "America/Santiago", "America/Sao_Paulo", "America/St_Johns",
	"America/Toronto", "America/Vancouver", "Asia/Bangkok", "Asia/Dhaka",
	"Asia/Dubai", "Asia/Hong_Kong", "Asia/Jakarta", "Asia/Jerusalem",
	"Asia/Karachi", "Asia/Kathmandu", "Asia/Kolkata", "Asia/Manila",
	"Asia/Seoul", "Asia/Shanghai", "Asia/Singapore", "Asia/Tehran",
	"Asia/Tokyo", "Atlantic/Reykjavik", "Australia/Adelaide", "Australia/Brisbane",
	"Australia/Perth", "Australia/Sydney", "Europe/Amsterdam", "Europe/Athens",
	"Europe/Berlin", "Europe/Dublin", "Europe/Helsinki", "Europe/Istanbul",
	"Europe/Lisbon", "Europe/London", "Europe/Madrid", "Europe/Moscow",
	"Europe/Paris", "Europe/Rome", "Europe/Stockholm", "Europe/Warsaw",
	"Europe/Zurich", "Pacific/Auckland", "Pacific/Honolulu", "UTC",
}

var (
	zonesOnce sync.Once
	zones     []string
)

// Timezones lists the IANA zone names known to this host, sorted.
func Timezones() []string {
	zonesOnce.Do(func() {
		for _, dir := range zoneDirs {
			if found := scanZoneDir(os.DirFS(dir)); len(found) > 0 {
				zones = found
				return
			}
		}
		zones = append([]string(nil), fallbackZones...)
		sort.Strings(zones)
	})
	return append([]string(nil), zones...)
}

func scanZoneDir(fsys fs.FS) []string {
	var names []string
	_ = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			switch path {
			case "posix", "right", "SystemV":
				return fs.SkipDir
			}
			return nil
		}
		if !zoneName(path) {
			return nil
		}
		if ValidTimezone(path) {
			names = append(names, path)
		}
		return nil
	})
	sort.Strings(names)
	return names
}

// Zone files are capitalised; data files like zone.tab and leapseconds are not.
func zoneName(path string) bool {
	if path == "" || path[0] < 'A' || path[0] > 'Z' {
		return false
	}
	return !strings.Contains(path, ".") && path != "Factory"
}

package config

// LocationKind identifies the kind of source a partial was loaded from.
type LocationKind int

// Source kinds.
const (
	LocationMemory LocationKind = iota
	LocationFile
	LocationURL
	LocationEnv
	LocationFlags
	LocationDefaults
)

// Location describes where a stage was loaded from. It is attached to
// SourceError values and to stage log records.
type Location struct {
	Kind LocationKind
	Name string
}

// MemoryLocation is the location of in-memory code.
func MemoryLocation() Location {
	return Location{Kind: LocationMemory, Name: ""}
}

// FileLocation is the location of a file at path.
func FileLocation(path string) Location {
	return Location{Kind: LocationFile, Name: path}
}

// URLLocation is the location of a remote document.
func URLLocation(rawURL string) Location {
	return Location{Kind: LocationURL, Name: rawURL}
}

// String renders the location for humans, e.g. "file: config.toml".
func (l Location) String() string {
	switch l.Kind {
	case LocationFile:
		return "file: " + l.Name
	case LocationURL:
		return "url: " + l.Name
	case LocationEnv:
		return withName("env", l.Name)
	case LocationFlags:
		return "flags"
	case LocationDefaults:
		return "defaults"
	default:
		return withName("memory", l.Name)
	}
}

func withName(kind, name string) string {
	if name == "" {
		return kind
	}

	return kind + ": " + name
}

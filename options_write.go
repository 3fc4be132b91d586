package id3v23

// SaveOption configures SaveFile and SaveFileAs.
//
// Example:
//
//	err := id3v23.SaveFile("song.mp3", tag,
//	    id3v23.WithBackup(".bak"),
//	    id3v23.WithValidation(),
//	)
type SaveOption func(*saveOptions)

// saveOptions holds configuration for saving a tag into a media file.
type saveOptions struct {
	backupSuffix    string // Suffix for backup file (e.g., ".bak")
	validate        bool   // Re-read the written tag and compare
	preserveModTime bool   // Keep original modification time
}

func defaultSaveOptions() *saveOptions {
	return &saveOptions{}
}

// WithBackup keeps the previous output file under its name plus suffix.
// WithBackup(".bak") moves "song.mp3" to "song.mp3.bak" before the new
// file takes its place. An existing backup is overwritten.
func WithBackup(suffix string) SaveOption {
	return func(o *saveOptions) {
		o.backupSuffix = suffix
	}
}

// WithValidation re-reads the written file, checks that its tag is
// byte-identical to the serialized tag and parses it again with the
// tag's own configuration.
func WithValidation() SaveOption {
	return func(o *saveOptions) {
		o.validate = true
	}
}

// WithPreserveModTime keeps the source file's modification time on the
// output file.
func WithPreserveModTime() SaveOption {
	return func(o *saveOptions) {
		o.preserveModTime = true
	}
}

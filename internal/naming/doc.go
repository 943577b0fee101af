// Package naming turns category naming patterns and extracted metadata into
// destination filenames. Music and video files prefer a tag-assembled
// "{artist} - {title}" form over the configured template; every resolved name
// passes through filename sanitization before use.
package naming

package chunker

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ObjectKey builds the bucket key for one chunk:
// {prefix}{base}_part_{NNN}.parquet, with a 1-based zero-padded ordinal.
// The prefix is prepended verbatim. Ordinals past 999 widen the padding.
func ObjectKey(prefix, base string, ordinal int) string {
	return fmt.Sprintf("%s%s_part_%03d.parquet", prefix, base, ordinal)
}

// BaseFilename strips the directory and extension from an input path.
func BaseFilename(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

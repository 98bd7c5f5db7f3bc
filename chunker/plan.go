package chunker

// A Plan describes how a dataset is partitioned into uploadable chunks.
// NumChunks is derived from the estimated in-memory size of the dataset;
// the chunk size budget is not a hard per-chunk byte cap.
type Plan struct {
	NumChunks    int
	RowsPerChunk int
}

// PlanChunks computes the plan for a dataset of totalRows rows with an
// estimated in-memory footprint of totalBytes, given a chunk size budget
// in megabytes.
func PlanChunks(totalBytes int64, chunkSizeMB int, totalRows int) Plan {
	chunkSizeBytes := int64(chunkSizeMB) * 1024 * 1024
	numChunks := int((totalBytes + chunkSizeBytes - 1) / chunkSizeBytes)
	if numChunks < 1 {
		numChunks = 1
	}
	return Plan{
		NumChunks:    numChunks,
		RowsPerChunk: totalRows / numChunks,
	}
}

// Bounds returns the 0-based row range [start, end) for the given chunk.
// Every chunk except the last holds exactly RowsPerChunk rows; the last
// chunk extends to the end of the dataset and absorbs the remainder. When
// RowsPerChunk is zero, all chunks but the last are empty and the last
// chunk holds every row.
func (p Plan) Bounds(chunk, totalRows int) (start, end int) {
	start = chunk * p.RowsPerChunk
	if chunk == p.NumChunks-1 {
		return start, totalRows
	}
	return start, start + p.RowsPerChunk
}

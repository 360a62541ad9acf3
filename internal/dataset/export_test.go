package dataset

// Reads reports how many times the loader has read its source.
func (l *Loader) Reads() int64 { return l.reads.Load() }

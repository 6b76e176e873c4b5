package datarecording

// NullRecorder is a DataRecorder that discards everything. It serves
// runs that have data recording disabled.
type NullRecorder struct{}

// CreateTable does nothing.
func (NullRecorder) CreateTable(tableName string, sampleEntry any) {}

// InsertData does nothing.
func (NullRecorder) InsertData(tableName string, entry any) {}

// ListTables returns an empty list.
func (NullRecorder) ListTables() []string { return nil }

// Flush does nothing.
func (NullRecorder) Flush() {}

// Close does nothing.
func (NullRecorder) Close() error { return nil }

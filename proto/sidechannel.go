package proto

// Progress is a side-channel packet reporting execution progress,
// surfaced to the caller without interrupting the data-block sequence.
type Progress struct {
	Rows      uint64
	Bytes     uint64
	TotalRows uint64
	// WrittenRows/WrittenBytes are never filled in by ReadProgress, which
	// reads only Rows, Bytes and TotalRows at every revision.
	WrittenRows  uint64
	WrittenBytes uint64
}

func ReadProgress(r *Reader, revision uint64) (Progress, error) {
	var p Progress
	var err error
	if p.Rows, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.Bytes, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.TotalRows, err = r.Uvarint(); err != nil {
		return p, err
	}
	return p, nil
}

// ProfileInfo is a side-channel packet reporting query execution
// statistics, emitted once per query before EndOfStream.
type ProfileInfo struct {
	Rows                      uint64
	Blocks                    uint64
	Bytes                     uint64
	AppliedLimit              bool
	RowsBeforeLimit           uint64
	CalculatedRowsBeforeLimit bool
}

func ReadProfileInfo(r *Reader) (ProfileInfo, error) {
	var p ProfileInfo
	var err error
	if p.Rows, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.Blocks, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.Bytes, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.AppliedLimit, err = r.Bool(); err != nil {
		return p, err
	}
	if p.RowsBeforeLimit, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.CalculatedRowsBeforeLimit, err = r.Bool(); err != nil {
		return p, err
	}
	return p, nil
}

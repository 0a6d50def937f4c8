package proto

// BlockInfo carries the two passed-through aggregation flags every block
// header serializes, per the field1=1/field2=2/field_end=0 framing
// ClickHouse uses for forward-compatible struct fields.
type BlockInfo struct {
	IsOverflows bool
	BucketNum   int32
}

func (b BlockInfo) Write(w *Writer) error {
	if err := w.Uvarint(1); err != nil {
		return err
	}
	if err := w.Bool(b.IsOverflows); err != nil {
		return err
	}
	if err := w.Uvarint(2); err != nil {
		return err
	}
	if err := w.Int32(b.BucketNum); err != nil {
		return err
	}
	return w.Uvarint(0)
}

func (b *BlockInfo) Read(r *Reader) error {
	b.BucketNum = -1
	for {
		field, err := r.Uvarint()
		if err != nil {
			return err
		}
		switch field {
		case 0:
			return nil
		case 1:
			v, err := r.Bool()
			if err != nil {
				return err
			}
			b.IsOverflows = v
		case 2:
			v, err := r.Int32()
			if err != nil {
				return err
			}
			b.BucketNum = v
		default:
			return nil
		}
	}
}

package proto

// ClientInfo describes the connecting client, sent as part of the Query
// packet once the negotiated revision supports it (RevisionWithClientInfo).
type ClientInfo struct {
	Query                 uint8 // query kind: 0 = no query, 1 = initial query, 2 = secondary query
	InitialUser           string
	InitialQueryID        string
	InitialAddress        string
	OSUser                string
	ClientHostname        string
	ClientName            string
	ClientVersionMajor    uint64
	ClientVersionMinor    uint64
	ClientRevision        uint64
	QuotaKey              string
	ClientVersionPatch    uint64
}

// Write serializes ClientInfo against the effective protocol revision.
func (c ClientInfo) Write(w *Writer, revision uint64) error {
	if err := w.UInt8(c.Query); err != nil {
		return err
	}
	if c.Query == 0 {
		return nil
	}
	for _, s := range []string{c.InitialUser, c.InitialQueryID, c.InitialAddress} {
		if err := w.String(s); err != nil {
			return err
		}
	}
	if err := w.UInt8(1); err != nil { // interface: 1 = TCP
		return err
	}
	for _, s := range []string{c.OSUser, c.ClientHostname, c.ClientName} {
		if err := w.String(s); err != nil {
			return err
		}
	}
	if err := w.Uvarint(c.ClientVersionMajor); err != nil {
		return err
	}
	if err := w.Uvarint(c.ClientVersionMinor); err != nil {
		return err
	}
	if err := w.Uvarint(c.ClientRevision); err != nil {
		return err
	}
	if revision >= RevisionWithQuotaKey {
		if err := w.String(c.QuotaKey); err != nil {
			return err
		}
	}
	if revision >= RevisionWithVersionPatch {
		if err := w.Uvarint(c.ClientVersionPatch); err != nil {
			return err
		}
	}
	return nil
}

// DefaultClientInfo builds the client-info block this library advertises.
func DefaultClientInfo(initialQueryID string) ClientInfo {
	return ClientInfo{
		Query:              1,
		InitialQueryID:     initialQueryID,
		ClientName:         ClientName,
		ClientVersionMajor: ClientVersionMajor,
		ClientVersionMinor: ClientVersionMinor,
		ClientRevision:     ClientRevision,
	}
}

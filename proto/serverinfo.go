package proto

import "time"

// ServerInfo is read from the Hello response during handshake.
type ServerInfo struct {
	Name         string
	MajorVersion uint64
	MinorVersion uint64
	Revision     uint64
	Timezone     *time.Location
	DisplayName  string
	VersionPatch uint64
}

// Read decodes ServerInfo, gating optional fields on the revision the
// server itself just reported.
func (s *ServerInfo) Read(r *Reader) error {
	var err error
	if s.Name, err = r.String(); err != nil {
		return err
	}
	if s.MajorVersion, err = r.Uvarint(); err != nil {
		return err
	}
	if s.MinorVersion, err = r.Uvarint(); err != nil {
		return err
	}
	if s.Revision, err = r.Uvarint(); err != nil {
		return err
	}
	if s.Revision >= RevisionWithServerTimezone {
		tz, err := r.String()
		if err != nil {
			return err
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			// An unrecognized IANA name shouldn't fail the handshake; the
			// caller falls back to UTC for DateTime rendering.
			loc = time.UTC
		}
		s.Timezone = loc
	}
	if s.Revision >= RevisionWithClientInfo {
		if s.DisplayName, err = r.String(); err != nil {
			return err
		}
	}
	if s.Revision >= RevisionWithVersionPatch {
		if s.VersionPatch, err = r.Uvarint(); err != nil {
			return err
		}
	}
	return nil
}

// EffectiveRevision returns min(clientRevision, s.Revision), the revision
// actually negotiated for this session.
func (s ServerInfo) EffectiveRevision(clientRevision uint64) uint64 {
	if s.Revision < clientRevision {
		return s.Revision
	}
	return clientRevision
}

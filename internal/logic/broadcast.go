package logic

// AdvertisementKind distinguishes the two broadcast payloads.
type AdvertisementKind string

const (
	AdIdentity AdvertisementKind = "IDENTITY"
	AdStatus   AdvertisementKind = "STATUS"
)

// Broadcast defaults.
const (
	DefaultIdentityURL = "j2x.us/heart"
	DefaultCompanyID   = 0x02e0
)

// StatusPayloadLen is the size of the remaining-time payload.
const StatusPayloadLen = 3

// Advertisement is one broadcast payload handed to the advertising driver.
type Advertisement struct {
	Kind AdvertisementKind
	// URL is set for identity advertisements.
	URL string
	// CompanyID and Data are set for status advertisements.
	CompanyID uint16
	Data      []byte
}

// StatusPayload encodes remaining time as {29-days, 23-hours, 59-minutes}.
// Each byte saturates at zero.
func StatusPayload(e ElapsedTime) [StatusPayloadLen]byte {
	r := e.Remaining()
	return [StatusPayloadLen]byte{r.Days, r.Hours, r.Minutes}
}

// Selector alternates between the identity and status payloads each time
// the advertising cadence fires.
type Selector struct {
	url       string
	companyID uint16
	rotate    bool
	next      int
}

// NewSelector creates a selector. With rotate false every slot carries the
// identity payload.
func NewSelector(url string, companyID uint16, rotate bool) *Selector {
	return &Selector{
		url:       url,
		companyID: companyID,
		rotate:    rotate,
	}
}

// Next returns the payload for the current slot and advances the rotation.
// The status payload is computed from e on every call and only while the
// device is WAITING; other states fall back to the identity payload.
func (s *Selector) Next(state State, e ElapsedTime) Advertisement {
	slot := s.next
	s.next = (s.next + 1) % 2

	if !s.rotate || slot == 0 || state != StateWaiting {
		return s.Identity()
	}
	return s.Status(e)
}

// Identity returns the static identity advertisement.
func (s *Selector) Identity() Advertisement {
	return Advertisement{Kind: AdIdentity, URL: s.url}
}

// Status returns the remaining-time advertisement for e.
func (s *Selector) Status(e ElapsedTime) Advertisement {
	p := StatusPayload(e)
	return Advertisement{
		Kind:      AdStatus,
		CompanyID: s.companyID,
		Data:      p[:],
	}
}

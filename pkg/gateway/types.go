package gateway

// Participant is one member of a group as reported by the gateway.
// The identifier field populated varies with the gateway schema version,
// so all variants are declared and probed in order by the classifier.
type Participant struct {
	ID      string `json:"id,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Number  string `json:"number,omitempty"`
	Contact string `json:"contact,omitempty"`
	IsAdmin bool   `json:"admin,omitempty"`
	Rank    string `json:"rank,omitempty"`
}

// Group is one group record from the gateway's listing or detail endpoint.
// Participants may be absent on listing responses; Size is the reported
// member count fallback for that case.
type Group struct {
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	Subject      string        `json:"subject,omitempty"`
	Description  string        `json:"description,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
	Size         int           `json:"size,omitempty"`
	ChatPic      string        `json:"chat_pic,omitempty"`
	Creator      string        `json:"creator,omitempty"`
}

// DisplayName prefers the name field, falling back to the legacy subject field
func (g Group) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return g.Subject
}

// Identity is the authenticated account's own identifier, from the health endpoint
type Identity struct {
	ID    string `json:"id,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PhoneOrID returns the best available self identifier
func (i Identity) PhoneOrID() string {
	if i.Phone != "" {
		return i.Phone
	}
	return i.ID
}

type listGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type sendMessageRequest struct {
	GroupID string `json:"group_id"`
	Body    string `json:"body"`
}

type sendMessageResponse struct {
	MessageID string `json:"message_id"`
}

package api

// TagTypeMeeting is the tag family shared by every meeting endpoint
const TagTypeMeeting = "meeting"

// ListID marks the tag that stands for a whole collection
const ListID = "LIST"

// Tag labels cached reads and the writes that make them stale
type Tag struct {
	Type string
	ID   string
}

func (t Tag) String() string {
	return t.Type + ":" + t.ID
}

// MeetingTag returns the per-item tag for a meeting id
func MeetingTag(id string) Tag {
	return Tag{Type: TagTypeMeeting, ID: id}
}

// MeetingListTag returns the "all meetings" tag
func MeetingListTag() Tag {
	return Tag{Type: TagTypeMeeting, ID: ListID}
}

package session

import "github.com/markdave123-py/Vivid/internal/core"

type Status string

const (
	StatusIdle         Status = "idle"
	StatusFileSelected Status = "file-selected"
	StatusProcessing   Status = "processing"
	StatusRefining     Status = "refining"
	StatusSuccess      Status = "success"
	StatusError        Status = "error"
)

// Video is the staged media owned by the session.
type Video struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Key      string `json:"-"`
}

// State is closed: only the variants below implement it. Each variant carries
// exactly the fields valid in that status, so e.g. Failed can never hold a
// conversation handle.
type State interface {
	Status() Status
	isState()
}

type Idle struct{}

type FileSelected struct {
	Video Video
}

type Processing struct {
	Video Video
}

type Success struct {
	Video        Video
	Conversation core.ConversationHandle
}

type Refining struct {
	Video        Video
	Conversation core.ConversationHandle
}

type Failed struct {
	Message string
}

func (Idle) Status() Status         { return StatusIdle }
func (FileSelected) Status() Status { return StatusFileSelected }
func (Processing) Status() Status   { return StatusProcessing }
func (Success) Status() Status      { return StatusSuccess }
func (Refining) Status() Status     { return StatusRefining }
func (Failed) Status() Status       { return StatusError }

func (Idle) isState()         {}
func (FileSelected) isState() {}
func (Processing) isState()   {}
func (Success) isState()      {}
func (Refining) isState()     {}
func (Failed) isState()       {}

// owned lists what a state holds that must be released when it is left for good.
type owned struct {
	video        *Video
	conversation core.ConversationHandle
}

func ownedBy(st State) owned {
	switch st := st.(type) {
	case Idle, Failed:
		return owned{}
	case FileSelected:
		return owned{video: &st.Video}
	case Processing:
		return owned{video: &st.Video}
	case Success:
		return owned{video: &st.Video, conversation: st.Conversation}
	case Refining:
		return owned{video: &st.Video, conversation: st.Conversation}
	default:
		panic("session: unknown state")
	}
}

func isBusy(st State) bool {
	switch st.(type) {
	case Processing, Refining:
		return true
	default:
		return false
	}
}

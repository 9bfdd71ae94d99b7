package protocol

// Response is a notification sent from the host to the controller.
type Response interface {
	response()
	String() string
}

// NewGameResponse reports that the host started a new session.
type NewGameResponse struct{}

func (NewGameResponse) response() {}

func (NewGameResponse) String() string { return "new-game" }

// StoppedResponse acknowledges that the host is paused and waiting for events.
type StoppedResponse struct{}

func (StoppedResponse) response() {}

func (StoppedResponse) String() string { return "stopped" }

var (
	NewGame Response = NewGameResponse{}
	Stopped Response = StoppedResponse{}
)

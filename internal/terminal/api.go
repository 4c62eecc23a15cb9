package terminal

// API wraps Manager with Wails-friendly methods.
type API struct{ mgr *Manager }

func NewAPI(mgr *Manager) *API { return &API{mgr: mgr} }

type Handle struct {
	SessionID string `json:"sessionId"`
}

func (a *API) Start(root string) (Handle, error) {
	id, err := a.mgr.Start(root)
	if err != nil {
		return Handle{}, err
	}
	return Handle{SessionID: id}, nil
}

func (a *API) Write(sessionID, data string) error { return a.mgr.Write(sessionID, data) }

func (a *API) Resize(sessionID string, cols, rows int) error {
	return a.mgr.Resize(sessionID, cols, rows)
}

func (a *API) Stop(sessionID string) error { return a.mgr.Stop(sessionID) }

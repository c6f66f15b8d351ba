package handler

// JobIDsRequest asks for details of several jobs at once.
type JobIDsRequest struct {
	JobIDs []string `json:"jobIds"`
}

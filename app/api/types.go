package api

type submitIdeaRequest struct {
	Idea string `json:"idea"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

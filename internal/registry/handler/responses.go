package handler

import (
	"maps"
	"slices"

	"voto/internal/registry/models"
)

type UsersResponse struct {
	Users []models.User `json:"users"`
}

type SurveysResponse struct {
	Surveys []models.Survey `json:"surveys"`
}

type CandidatesResponse struct {
	Candidates []models.Candidate `json:"candidates"`
}

type VotesResponse struct {
	Votes []models.Vote `json:"votes"`
}

type AdminsResponse struct {
	Admins []models.Admin `json:"admins"`
}

// AuthenticateResponse carries a session token only when authenticated.
type AuthenticateResponse struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token,omitempty"`
	ExpiresIn     int64  `json:"expires_in,omitempty"`
}

// sortedValues returns the map values ordered by id so list replies are
// stable.
func sortedValues[T any](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[id])
	}
	return out
}

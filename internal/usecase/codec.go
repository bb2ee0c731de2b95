package usecase

import (
	"fmt"

	"github.com/saintathena/backend/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// encodeResponse snapshots a response for the result cache. Cached bytes are immutable,
// so every hit decodes a private copy.
func encodeResponse(resp *domain.SearchResponse) ([]byte, error) {
	data, err := msgpack.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode cached response: %w", err)
	}
	return data, nil
}

// decodeResponse restores a cached response. Empty slices are restored as empty, not nil,
// so a cached payload renders exactly like the fresh one.
func decodeResponse(data []byte) (*domain.SearchResponse, error) {
	var resp domain.SearchResponse
	if err := msgpack.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode cached response: %w", err)
	}
	fillEmptySlices(&resp)
	return &resp, nil
}

func fillEmptySlices(resp *domain.SearchResponse) {
	fillCandidates := func(cs []domain.MatchCandidate) []domain.MatchCandidate {
		if cs == nil {
			cs = []domain.MatchCandidate{}
		}
		for i := range cs {
			if cs[i].MatchedOn == nil {
				cs[i].MatchedOn = []string{}
			}
		}
		return cs
	}

	switch resp.Mode {
	case domain.ModeList:
		if resp.Items == nil {
			resp.Items = []domain.ListEntry{}
		}
		for i := range resp.Items {
			resp.Items[i].Matches = fillCandidates(resp.Items[i].Matches)
		}
	default:
		resp.Matches = fillCandidates(resp.Matches)
	}
}

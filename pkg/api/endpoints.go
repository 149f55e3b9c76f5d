package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/portul/pkg/convert"
	"github.com/hazyhaar/portul/pkg/dict"
	"github.com/hazyhaar/portul/pkg/kit"
)

// Shared request/response types used by both HTTP and MCP transports.

type batchRequest struct {
	Items []convert.Request `json:"items"`
}

type batchResponse struct {
	Results []convert.Result `json:"results"`
}

type dictsResponse struct {
	Dictionaries []dict.DictInfo `json:"dictionaries"`
}

type lookupReq struct {
	Dict      string
	Word      string
	Direction string
	POS       *dict.POS
}

type lookupEntry struct {
	POS    dict.POS `json:"pos"`
	Result string   `json:"result"`
}

type lookupResponse struct {
	Dict      string        `json:"dict"`
	Direction string        `json:"direction"`
	Word      string        `json:"word"`
	Found     bool          `json:"found"`
	Entries   []lookupEntry `json:"entries"`
}

type completeReq struct {
	Dict      string
	Prefix    string
	Direction string
	Limit     int
}

type completeResponse struct {
	Dict      string   `json:"dict"`
	Direction string   `json:"direction"`
	Prefix    string   `json:"prefix"`
	Words     []string `json:"words"`
}

// allPOS is every part-of-speech key a forward entry can be stored under.
var allPOS = []dict.POS{dict.POSNone, dict.POSNoun, dict.POSVerb, dict.POSAdjective, dict.POSAdverb, dict.POSInterjection}

// endpoints holds every action, wrapped with the shared middleware chain.
type endpoints struct {
	convert   kit.Endpoint
	batch     kit.Endpoint
	explain   kit.Endpoint
	listDicts kit.Endpoint
	lookup    kit.Endpoint
	complete  kit.Endpoint
}

func newEndpoints(svc *convert.Service, logger *slog.Logger) *endpoints {
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Recover(logger), kit.Logging(logger, name))(ep)
	}
	reg := svc.Registry()
	return &endpoints{
		convert:   wrap("convert", convertEndpoint(svc)),
		batch:     wrap("convert_batch", batchEndpoint(svc)),
		explain:   wrap("explain", explainEndpoint(svc)),
		listDicts: wrap("list_dicts", listDictsEndpoint(reg)),
		lookup:    wrap("lookup", lookupEndpoint(reg)),
		complete:  wrap("complete", completeEndpoint(reg)),
	}
}

func convertEndpoint(svc *convert.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*convert.Request)
		return svc.Convert(ctx, *req)
	}
}

func batchEndpoint(svc *convert.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*batchRequest)
		results, err := svc.ConvertBatch(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		return batchResponse{Results: results}, nil
	}
}

func explainEndpoint(svc *convert.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*convert.Request)
		return svc.Explain(ctx, *req)
	}
}

func listDictsEndpoint(reg *dict.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return dictsResponse{Dictionaries: reg.ListDicts()}, nil
	}
}

// lookupEndpoint queries one index without tagging. In the forward direction
// without a pos filter every part-of-speech key is reported.
func lookupEndpoint(reg *dict.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*lookupReq)
		d, ok := reg.Get(req.Dict)
		if !ok {
			return nil, fmt.Errorf("%w: %q", convert.ErrUnknownDict, req.Dict)
		}
		dir, err := dict.ParseDirection(req.Direction)
		if err != nil {
			return nil, err
		}

		resp := lookupResponse{Dict: d.ID(), Direction: dir.String(), Word: req.Word, Entries: []lookupEntry{}}
		keys := allPOS
		switch {
		case dir == dict.Reverse:
			keys = []dict.POS{dict.POSNone}
		case req.POS != nil:
			keys = []dict.POS{*req.POS}
		}
		for _, pos := range keys {
			if v, ok := d.Lookup(dir, req.Word, pos); ok {
				resp.Entries = append(resp.Entries, lookupEntry{POS: pos, Result: v})
			}
		}
		resp.Found = len(resp.Entries) > 0
		return resp, nil
	}
}

func completeEndpoint(reg *dict.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*completeReq)
		d, ok := reg.Get(req.Dict)
		if !ok {
			return nil, fmt.Errorf("%w: %q", convert.ErrUnknownDict, req.Dict)
		}
		dir, err := dict.ParseDirection(req.Direction)
		if err != nil {
			return nil, err
		}
		words := d.Complete(dir, req.Prefix, req.Limit)
		if words == nil {
			words = []string{}
		}
		return completeResponse{Dict: d.ID(), Direction: dir.String(), Prefix: req.Prefix, Words: words}, nil
	}
}

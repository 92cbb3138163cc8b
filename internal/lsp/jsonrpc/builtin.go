package jsonrpc

import "context"

const CANCEL_REQUEST_METHOD = "$/cancelRequest"

type cancelParams struct {
	ID interface{} `json:"id"` // int or string
}

// CancelRequest handles $/cancelRequest notifications: the context of the targeted handler is cancelled
// and the request is answered with RequestCancelled.
func CancelRequest() MethodInfo {
	return MethodInfo{
		Name: CANCEL_REQUEST_METHOD,
		NewRequest: func() interface{} {
			return &cancelParams{}
		},
		Handler: func(ctx context.Context, req interface{}) (interface{}, error) {
			params := req.(*cancelParams)
			session := GetSession(ctx)
			if params.ID != nil && session != nil {
				session.cancelRequest(params.ID)
			}
			return nil, nil
		},
	}
}

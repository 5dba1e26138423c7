// Package mocks provides hand-written function-field mocks of the service
// interfaces for handler and middleware tests.
//
// Each mock method calls the matching Fn field when set and otherwise
// returns a benign default:
//
//	reviews := &mocks.MockReviewService{
//	    GetDueQueueFn: func(ctx context.Context, ownerID uuid.UUID, limit int) (*review.DueQueue, error) {
//	        return nil, store.ErrTransient
//	    },
//	}
package mocks

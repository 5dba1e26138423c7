// Package api exposes the review, engagement and boss round services over
// HTTP. Handlers decode and validate requests, take the owner from the
// authenticated context and translate service errors into sanitized
// responses via HandleAPIError.
package api

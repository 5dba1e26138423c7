// Package task runs housekeeping jobs in the background of the server
// process. No request-path correctness depends on them: they only tidy state
// that reads already handle lazily.
package task

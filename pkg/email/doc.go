// Package email dispatches transactional mail for the auth suite.
//
// Production uses Postmark; development uses a sender that logs the
// message instead. Both sit behind the Sender interface so the auth
// core never knows which one it is talking to.
package email

// Package client connects the profile client to a ledger node.
//
// # Overview
//
// Client is the transport-agnostic contract the wallet uses: health ping,
// chain info, the challenge login, account state, transaction submission,
// receipts and profile reads. GRPCClient implements it over gRPC with the
// JSON codec from package rpc.
//
// # Sessions
//
// After Authenticate the access token is attached to every call by an
// interceptor. When the node answers a call with codes.Unauthenticated and
// the message of common.ErrTokenExpired, the interceptor runs the
// re-authenticator installed with SetReauthenticator once and retries.
//
// # Error Handling
//
// gRPC status codes are mapped back to the sentinels in package common so
// callers can match them with errors.Is.
package client

// Package testutil provides fixtures and test infrastructure for the record
// packages.
//
// StartNATSServer runs a real NATS server in-process on a random port, so
// transport and client tests need no external broker:
//
//	url := testutil.StartNATSServer(t)
//	client, _ := natsclient.NewClient(url)
//
// MockNATSClient is an in-memory bus with the same PublishMsg and Subscribe
// signatures as natsclient.Client, for tests that only need message routing.
//
// The record fixtures (BeaconExample, SampleExample, PoseExample and friends)
// and their encoded forms keep expected bytes in one place.
package testutil

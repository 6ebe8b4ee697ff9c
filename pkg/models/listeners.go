package models

type SessionListener interface {
	OnStateChanged(ConnectionState)
	OnFailure(FailureReason)
}

package routes

const (
	// Health
	Health = "/health"

	// Deletion endpoints; {account_type} is worker or propertyManager.
	InitiateDeletion = "/auth/v1/{account_type}/initiate-deletion"
	ConfirmDeletion  = "/auth/v1/{account_type}/confirm-deletion"
)

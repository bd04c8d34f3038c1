package storage

// Keys of the persisted key space. Values are JSON.
const (
	// SessionUserKey holds the logged-in User, or is absent.
	SessionUserKey = "@user"
	// UsersKey holds the array of every registered User.
	UsersKey = "@users_profile"

	transactionsPrefix = "@transactions_"
)

// TransactionsKey returns the key of the transaction list owned by userID.
// It is the only place the per-user key is derived.
func TransactionsKey(userID string) string {
	return transactionsPrefix + userID
}

package profile

// Profile is a publishing identity owned by a wallet address.
type Profile struct {
	Id          string `json:"id"`
	Address     string `json:"address"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
}

package domain

// ShopSession ties a shop domain to the access token obtained during
// installation. A session is created once on a successful token exchange and
// never mutated; Shopify tokens are long-lived, so no expiry is tracked.
type ShopSession struct {
	Shop        string `json:"shop" bson:"shop"`
	AccessToken string `json:"access_token" bson:"access_token"`
}

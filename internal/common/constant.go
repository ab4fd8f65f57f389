// Package common contains shared constants and sentinel errors used across
// citybreaks components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token inside AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// CollectionPath is the REST path of the trip entry collection.
const CollectionPath = "/api/cityBreak"

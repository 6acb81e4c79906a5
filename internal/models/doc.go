// Package models defines the WordPress data transfer objects and the locally persisted entities of wpx.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs mirroring the WordPress REST API
//   - [Post] : A post with rendered (and optionally raw) fields and embedded author/media
//   - [Category], [User], [Media], [SearchResult] : Supporting resources
//   - [PostPayload], [UserUpdate] : Request bodies for saves and profile updates
//   - [PostQuery], [PostPage] : List filters and paged results
//
// 2. Local entities and preferences
//   - [Upload] : History of media uploaded through the client, persisted in SQLite
//   - [Settings] : Client preferences with [DefaultSettings]
//
// Persisted entities implement [Model]; [Repository] defines the CRUD operations over them.
package models

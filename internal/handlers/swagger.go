package handlers

// @title Inventory API
// @version 1.0
// @description Inventory management for small businesses: products, categories, suppliers and orders

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token. The accessToken cookie is accepted too.

// @tag.name products
// @tag.description Product catalog and stock operations

// @tag.name categories
// @tag.description Category tree and cascading updates

// @tag.name suppliers
// @tag.description Supplier records and performance

// @tag.name orders
// @tag.description Sale and purchase order lifecycle

// @tag.name users
// @tag.description Accounts and sessions

// @title           GoIndex RPC
// @version         1.0
// @description     Synchronous document indexing and retrieval over a shared static credential.

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:5602
// @BasePath  /
// @schemes   http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package utils

//run redis (only for the redis snapshot backend)
//docker run -p 6379:6379 -d redis

//run qdrant (only when the passage mirror is enabled)
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//swagger init
//swag init -g cmd/indexserver/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/indexserver/docs

// Package shopifyautomation is a backend that imports AliExpress products into
// a Shopify store, generates social media and SEO copy for them, and keeps a
// searchable diagnostic log. The server entry point is cmd/server.
//
// Project structure:
//
//	shopify-automation/
//	├── cmd/
//	│   └── server/
//	│       └── main.go
//	├── internal/
//	│   ├── config/        env configuration, Shopify/OpenAI/S3 settings
//	│   ├── database/      gorm connection, migrations, admin seed
//	│   │   └── dbtest/    in-memory sqlite for tests
//	│   ├── handlers/      gin handlers per resource
//	│   ├── i18n/          en/ko message catalogs
//	│   ├── metrics/       prometheus collectors
//	│   ├── middleware/    logging, metrics, cors, rate limit, language
//	│   ├── models/        gorm models
//	│   ├── router/        route table
//	│   ├── services/      import pipeline, catalogs, content, logs, users
//	│   └── utils/         responses, pagination, validation, slugs
//	└── go.mod
package shopifyautomation

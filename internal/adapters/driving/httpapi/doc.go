// Package httpapi exposes the retrieval, chat, auth and health services over
// HTTP using echo. Routes and JSON shapes follow the document QA web client.
package httpapi

// Package bridge serves hoard's commands as a small local JSON API, so a
// GUI front-end can drive the same session.Store the terminal UI uses.
//
// # Protocol
//
// Every command is POST /commands/{name} with Content-Type application/json
// and a JSON object body (an empty body means no arguments). Success is 200 with the JSON result; failure is
// a non-2xx status with the error message as a bare JSON string:
//
//	POST /commands/set_base_url     {"url": "https://hoarder.example.com/x"}
//	  -> {"origin": "https://hoarder.example.com"}
//	POST /commands/store_api_key    {"api_key": "..."}            -> null
//	POST /commands/get_api_key                                    -> {"api_key": "..."}
//	POST /commands/fetch_bookmarks  {"favourited": true, "cursor": "...", "limit": 20}
//	  -> {"bookmarks": [...], "next_cursor": "..." | null}
//	POST /commands/get_bookmark     {"bookmark_id": "b1"}
//	POST /commands/update_bookmark  {"bookmark_id": "b1", "archived": true}
//	POST /commands/delete_bookmark  {"bookmark_id": "b1"}         -> null
//	POST /commands/create_bookmark  {"url": "https://go.dev", "title": "Go"}
//	POST /commands/search_bookmarks {"query": "golang", "cursor": "...", "limit": 20}
//	  -> {"bookmarks": [...], "next_cursor": "..." | null}
//	POST /commands/get_lists                                      -> {"lists": [{"id", "name"}]}
//	POST /commands/get_tags                                       -> {"tags": [{"id", "name"}]}
//	POST /commands/fetch_list_bookmarks {"list_id": "l1", "cursor": "...", "limit": 20}
//	POST /commands/fetch_tag_bookmarks  {"tag_id": "t1"}
//	POST /commands/get_log_path                                   -> {"path": "..."}
//	POST /commands/tail_log         {"lines": 200, "raw": false}  -> {"path": "...", "lines": [...]}
//
// GET /commands lists the command names and GET /healthz reports the
// credential state and current origin.
//
// # Status Codes
//
//	400  malformed arguments or an invalid server URL
//	401  no API key validated for the current server
//	403  foreign Host or Origin header
//	415  command body not sent as application/json
//	412  no server URL configured yet
//	502  the bookmark server failed or answered with an error
//	500  the credential store is unavailable
//
// # Exposure
//
// The bridge is meant to listen on a loopback address. Requests whose Host
// header is not a loopback name are refused, and so are requests carrying
// an Origin header from anywhere but a loopback page. Commands must be sent
// as application/json, which a browser will not do cross-site without a
// CORS preflight; the bridge answers no preflight. Request bodies are never
// logged.
package bridge

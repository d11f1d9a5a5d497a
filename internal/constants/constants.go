package constants

// XmlRpcEndpoint is the OpenSubtitles XML-RPC API endpoint.
const XmlRpcEndpoint = "https://api.opensubtitles.org:443/xml-rpc"

// DefaultUserAgent identifies this application to the API. OpenSubtitles
// rejects calls carrying an unregistered user agent with status 414.
const DefaultUserAgent = "subtle v0.1"

// DefaultSubLanguageID is used when the user has not configured any
// preferred languages.
const DefaultSubLanguageID = "eng"

// ConfigDirName is the per-user directory (under $HOME) that holds the
// config file, the scan queue and the log file.
const ConfigDirName = ".subtle"

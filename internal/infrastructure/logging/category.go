package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Realtime        Category = "Realtime"
	RabbitMQ        Category = "RabbitMQ"
	Mongo           Category = "Mongo"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
)

const (
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"
	Membership      SubCategory = "Membership"
	CodeSync        SubCategory = "CodeSync"
	Chat            SubCategory = "Chat"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RoomID       ExtraKey = "RoomID"
	SocketID     ExtraKey = "SocketID"
	Username     ExtraKey = "Username"
	ErrorMessage ExtraKey = "ErrorMessage"
)

package narada

// Version is the SDK release version, checked against the server-declared
// minimum in GET /sdk/config.
const Version = "1.0.0"

// configPackageName is the key under which the server lists this SDK's
// compatibility floor.
const configPackageName = "narada-go"

package dto

// Envelope is the uniform response shape: {ok:true,data:...} on success,
// {ok:false,error:"..."} on failure. Clients treat anything without ok==true
// as an error.
type Envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// AuthPayload wraps the user field of auth responses. User is present but
// null on check-auth when no session exists.
type AuthPayload struct {
	User *UserOutput `json:"user"`
}

func Success(data any) Envelope {
	return Envelope{OK: true, Data: data}
}

func Failure(msg string) Envelope {
	return Envelope{OK: false, Error: msg}
}

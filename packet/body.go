package packet

import "rubin.dev/plabble/certificate"

// RequestBody is a tagged union over every request packet type's body.
// Exactly one field is set, matching RequestHeader.Type.
type RequestBody struct {
	Certificate *CertificateRequestBody
	Session     *SessionRequestBody
	Get         *BucketQuery
	Stream      *StreamRequestBody
	Post        *PostRequestBody
	Patch       *PatchRequestBody
	Put         *PutRequestBody
	Delete      *BucketQuery
	Subscribe   *BucketQuery
	Unsubscribe *BucketQuery
	Register    *RegisterRequestBody
	Identify    *IdentifyRequestBody
	Proxy       *ProxyRequestBody
	Custom      *CustomBody
	Opcode      *OpcodeRequestBody
}

// ResponseBody is a tagged union over every response packet type's
// body. The mutation acknowledgements (Post, Patch, Put, Delete,
// Subscribe, Unsubscribe, Identify) carry no payload of their own: a
// response of that type with every field nil is itself the ack, there
// being nothing in the retrieved source beyond the bare discriminant
// for these types (see DESIGN.md).
type ResponseBody struct {
	Certificate *CertificateResponseBody
	Session     *SessionResponseBody
	Get         *BucketBody
	Stream      *StreamResponseBody
	Register    *RegisterResponseBody
	Proxy       *ProxyResponseBody
	Custom      *CustomBody
	Opcode      *OpCodeResponseBody
	Error       *ErrorBody
}

// RegisterResponseBody is the certificate issued for a successful
// REGISTER, reusing certificate.Certificate's own Encode/Decode rather
// than a dedicated wrapper.
type RegisterResponseBody struct {
	Certificate certificate.Certificate
}

package bgp

// Version is a BGP version implemented by a speaker
type Version uint8

// ASN is an autonomous system number
type ASN uint16

// Identifier is used by a speaker and typically represents an IPv4 address
type Identifier uint32

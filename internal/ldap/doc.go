// Package ldap implements the LDAP message subset served by dirlite:
// Bind, Search and Unbind requests and their responses, as specified in
// RFC 4511.
//
// # Message Structure
//
// All LDAP messages follow the LDAPMessage envelope structure:
//
//	LDAPMessage ::= SEQUENCE {
//	    messageID       MessageID,
//	    protocolOp      CHOICE { ... },
//	    controls        [0] Controls OPTIONAL
//	}
//
// Message IDs and the integer fields of requests are single octets.
//
// Use ReadPacket to frame one message from a stream and DecodeMessage to
// decode it:
//
//	packet, err := ldap.ReadPacket(conn, maxSize)
//	if err != nil {
//	    // close the connection
//	}
//	msg, err := ldap.DecodeMessage(packet)
//	switch req := msg.Request.(type) {
//	case *ldap.BindRequest:
//	case *ldap.SearchRequest:
//	    // req.Filter is a *filter.Filter
//	case *ldap.UnbindRequest:
//	}
//
// # Responses
//
// Each response PDU is encoded independently and can be written as soon
// as it is built:
//
//	data, err := ldap.EncodeSearchResultEntry(msg.MessageID, &ldap.SearchResultEntry{
//	    ObjectName: "uid=alice",
//	    Attributes: []ldap.Attribute{{Type: "cn", Values: [][]byte{[]byte("Alice")}}},
//	})
//
//	data, err := ldap.EncodeSearchResultDone(msg.MessageID, ldap.Result{
//	    Code: ldap.ResultSizeLimitExceeded,
//	})
//
// DecodeResponse parses responses on the client side.
package ldap

// Package archive is a client for the Cryptic Archive REST API.
//
// A Session owns the server-issued session identifier and exposes the API as
// method calls. Protected operations require an established session and fail
// with ErrNotConnected, without touching the network, when there is none.
//
//	s, err := archive.New(ctx, archive.ConfigFromEnv(), archive.WithCredentials("me", "secret"))
//	if err != nil {
//		return err
//	}
//	defer s.Terminate(ctx)
//	records, err := s.ListRecords(ctx)
//
// Every failure is an Error. Its Kind tells a business failure (KindGeneric) from
// a transport failure (KindHTTP) and from the two server requests for credentials,
// KindAuthorization and KindAuthentication. Branch on Kind or KindOf.
//
// errors.Is(err, ErrAuthorization) and errors.Is(err, ErrAuthentication) follow
// the kind, and every Error matches ErrGeneric. errors.Is(err, ErrHTTP) does not
// follow the kind: it only reports that the failure came from a request to the
// server, so a server rejection such as invalid credentials matches ErrHTTP
// while being KindGeneric. A local failure such as ErrNotConnected does not
// match ErrHTTP.
//
// A Session is not safe for concurrent use.
package archive

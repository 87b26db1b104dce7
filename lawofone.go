// Package lawofone answers free-text questions from a locally cached
// corpus of the Law of One material. It scrapes session transcripts,
// categories and a few secondary-site sections, keeps them in a snapshot,
// scores stored records against a query and formats the best one as a
// reply in the Ra persona.
//
// This package contains domain types, interfaces and pure functions
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., goquery/,
// sqlite/, http/).
package lawofone

package constants

import (
	"fmt"
	"sort"
)

// CacheTag labels cached query results so a mutation can refresh every query
// that depends on the data it changed.
type CacheTag string

const (
	TagUsers              CacheTag = "Users"
	TagProfile            CacheTag = "Profile"
	TagAppliedJobs        CacheTag = "AppliedJobs"
	TagRecentJobs         CacheTag = "RecentJobs"
	TagDashboard          CacheTag = "Dashboard"
	TagLibrary            CacheTag = "Library"
	TagPayment            CacheTag = "Payment"
	TagFAQ                CacheTag = "FAQ"
	TagPrivacyPolicy      CacheTag = "PrivacyPolicy"
	TagNotification       CacheTag = "Notification"
	TagReport             CacheTag = "Report"
	TagAboutUs            CacheTag = "aboutus"
	TagTermsAndConditions CacheTag = "TermsAndConditions"
	TagLegalNotice        CacheTag = "LegalNotice"
)

// AllTags lists every known tag
var AllTags = []CacheTag{
	TagUsers, TagProfile, TagAppliedJobs, TagRecentJobs, TagDashboard, TagLibrary,
	TagPayment, TagFAQ, TagPrivacyPolicy, TagNotification, TagReport, TagAboutUs,
	TagTermsAndConditions, TagLegalNotice,
}

// ParseCacheTag maps a wire value back to a known tag
func ParseCacheTag(s string) (CacheTag, bool) {
	for _, t := range AllTags {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// QueryName identifies one cached read
type QueryName string

const (
	QueryUsersList         QueryName = "users.list"
	QueryUserDetail        QueryName = "users.detail"
	QueryProfile           QueryName = "profile.get"
	QueryAppliedJobsList   QueryName = "jobs.list"
	QueryAppliedJobDetail  QueryName = "jobs.detail"
	QueryRecentJobs        QueryName = "jobs.recent"
	QueryDashboardData     QueryName = "jobs.dashboard"
	QueryLibraryList       QueryName = "library.list"
	QueryPaymentsList      QueryName = "payments.list"
	QueryFAQList           QueryName = "faq.list"
	QueryPrivacyPolicy     QueryName = "privacy_policy.get"
	QueryNotificationsList QueryName = "notifications.list"
	QueryUnreadCount       QueryName = "notifications.unread_count"
	QueryReportsList       QueryName = "reports.list"
	QueryReportDetail      QueryName = "reports.detail"
	QueryAboutUs           QueryName = "settings.about"
	QueryTermsConditions   QueryName = "settings.terms"
	QueryLegalNotice       QueryName = "settings.legal"
)

// Mutation identifies one write against the upstream API
type Mutation string

const (
	MutationCreateUser              Mutation = "users.create"
	MutationUpdateUser              Mutation = "users.update"
	MutationDeleteUser              Mutation = "users.delete"
	MutationToggleBlockUser         Mutation = "users.block"
	MutationUpdateProfile           Mutation = "profile.update"
	MutationUploadProfileImage      Mutation = "profile.upload_image"
	MutationChangePassword          Mutation = "auth.change_password"
	MutationCreateAppliedJob        Mutation = "jobs.create"
	MutationUpdateAppliedJob        Mutation = "jobs.update"
	MutationUpdateApplicationStatus Mutation = "jobs.update_status"
	MutationDeleteAppliedJob        Mutation = "jobs.delete"
	MutationCreateLibraryItem       Mutation = "library.create"
	MutationUpdateLibraryItem       Mutation = "library.update"
	MutationDeleteLibraryItem       Mutation = "library.delete"
	MutationCreatePayment           Mutation = "payments.create"
	MutationUpdatePayment           Mutation = "payments.update"
	MutationDeletePayment           Mutation = "payments.delete"
	MutationCreateFAQ               Mutation = "faq.create"
	MutationUpdateFAQ               Mutation = "faq.update"
	MutationDeleteFAQ               Mutation = "faq.delete"
	MutationCreatePrivacyPolicy     Mutation = "privacy_policy.create"
	MutationUpdatePrivacyPolicy     Mutation = "privacy_policy.update"
	MutationMarkNotificationRead    Mutation = "notifications.mark_read"
	MutationMarkAllNotificationRead Mutation = "notifications.mark_all_read"
	MutationSaveAboutUs             Mutation = "settings.save_about"
	MutationSaveTermsConditions     Mutation = "settings.save_terms"
	MutationSaveLegalNotice         Mutation = "settings.save_legal"
)

// QueryProvides is the read side of the tag graph
var QueryProvides = map[QueryName][]CacheTag{
	QueryUsersList:         {TagUsers},
	QueryUserDetail:        {TagUsers},
	QueryProfile:           {TagProfile},
	QueryAppliedJobsList:   {TagAppliedJobs},
	QueryAppliedJobDetail:  {TagAppliedJobs},
	QueryRecentJobs:        {TagRecentJobs},
	QueryDashboardData:     {TagDashboard},
	QueryLibraryList:       {TagLibrary},
	QueryPaymentsList:      {TagPayment},
	QueryFAQList:           {TagFAQ},
	QueryPrivacyPolicy:     {TagPrivacyPolicy},
	QueryNotificationsList: {TagNotification},
	QueryUnreadCount:       {TagNotification},
	QueryReportsList:       {TagReport},
	QueryReportDetail:      {TagReport},
	QueryAboutUs:           {TagAboutUs},
	QueryTermsConditions:   {TagTermsAndConditions},
	QueryLegalNotice:       {TagLegalNotice},
}

// MutationInvalidates is the write side of the tag graph. A successful
// mutation invalidates exactly these tags and nothing else.
var MutationInvalidates = map[Mutation][]CacheTag{
	MutationCreateUser:              {TagUsers},
	MutationUpdateUser:              {TagUsers},
	MutationDeleteUser:              {TagUsers},
	MutationToggleBlockUser:         {TagUsers},
	MutationUpdateProfile:           {TagProfile, TagUsers},
	MutationUploadProfileImage:      {TagProfile, TagUsers},
	MutationChangePassword:          {},
	MutationCreateAppliedJob:        {TagAppliedJobs, TagRecentJobs, TagDashboard},
	MutationUpdateAppliedJob:        {TagAppliedJobs, TagRecentJobs, TagDashboard},
	MutationUpdateApplicationStatus: {TagAppliedJobs, TagRecentJobs, TagDashboard},
	MutationDeleteAppliedJob:        {TagAppliedJobs, TagRecentJobs, TagDashboard},
	MutationCreateLibraryItem:       {TagLibrary},
	MutationUpdateLibraryItem:       {TagLibrary},
	MutationDeleteLibraryItem:       {TagLibrary},
	MutationCreatePayment:           {TagPayment},
	MutationUpdatePayment:           {TagPayment},
	MutationDeletePayment:           {TagPayment},
	MutationCreateFAQ:               {TagFAQ},
	MutationUpdateFAQ:               {TagFAQ},
	MutationDeleteFAQ:               {TagFAQ},
	MutationCreatePrivacyPolicy:     {TagPrivacyPolicy},
	MutationUpdatePrivacyPolicy:     {TagPrivacyPolicy},
	MutationMarkNotificationRead:    {TagNotification},
	MutationMarkAllNotificationRead: {TagNotification},
	MutationSaveAboutUs:             {TagAboutUs},
	MutationSaveTermsConditions:     {TagTermsAndConditions},
	MutationSaveLegalNotice:         {TagLegalNotice},
}

// TagsProvidedBy returns the tags a query result carries
func TagsProvidedBy(q QueryName) []CacheTag {
	return append([]CacheTag(nil), QueryProvides[q]...)
}

// TagsInvalidatedBy returns the tags a mutation invalidates and whether the
// mutation is declared at all.
func TagsInvalidatedBy(m Mutation) ([]CacheTag, bool) {
	tags, ok := MutationInvalidates[m]
	if !ok {
		return nil, false
	}
	return append([]CacheTag(nil), tags...), true
}

// ValidateTagGraph checks that every tag a mutation invalidates is provided
// by at least one query, and that every query provides at least one tag.
func ValidateTagGraph() error {
	provided := make(map[CacheTag]bool)
	for q, tags := range QueryProvides {
		if len(tags) == 0 {
			return fmt.Errorf("query %s provides no tags", q)
		}
		for _, t := range tags {
			if _, ok := ParseCacheTag(string(t)); !ok {
				return fmt.Errorf("query %s provides unknown tag %q", q, t)
			}
			provided[t] = true
		}
	}

	mutations := make([]string, 0, len(MutationInvalidates))
	for m := range MutationInvalidates {
		mutations = append(mutations, string(m))
	}
	sort.Strings(mutations)

	for _, m := range mutations {
		for _, t := range MutationInvalidates[Mutation(m)] {
			if !provided[t] {
				return fmt.Errorf("mutation %s invalidates tag %q that no query provides", m, t)
			}
		}
	}
	return nil
}

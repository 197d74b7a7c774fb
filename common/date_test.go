package common_test

import (
	"encoding/json"
	"staffing/common"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Date", func() {
	d := func(s string) common.Date { return common.MustParseDate(s) }
	dp := func(s string) *common.Date { v := common.MustParseDate(s); return &v }

	Describe("ParseDate", func() {
		It("should parse calendar dates", func() {
			Expect(d("2024-01-10")).To(Equal(common.NewDate(2024, time.January, 10)))
			Expect(d("2024-01-10").Month()).To(Equal("2024-01"))
		})
		It("should reject malformed dates", func() {
			_, err := common.ParseDate("2024/01/10")
			Expect(err).To(HaveOccurred())
			_, err = common.ParseDate("2024-02-30")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Week", func() {
		It("should span monday to sunday", func() {
			from, to := d("2024-01-10").Week()
			Expect(from).To(Equal(d("2024-01-08")))
			Expect(to).To(Equal(d("2024-01-14")))
			from, to = d("2024-01-14").Week()
			Expect(from).To(Equal(d("2024-01-08")))
			Expect(to).To(Equal(d("2024-01-14")))
			from, _ = d("2024-01-08").Week()
			Expect(from).To(Equal(d("2024-01-08")))
		})
	})

	Describe("JSON", func() {
		It("should encode as text and decode back", func() {
			b, err := json.Marshal(struct {
				Date common.Date  `json:"date"`
				End  *common.Date `json:"end"`
			}{Date: d("2024-01-10")})
			Expect(err).To(BeNil())
			Expect(string(b)).To(MatchJSON(`{"date":"2024-01-10","end":null}`))

			var v struct {
				Date common.Date `json:"date"`
			}
			Expect(json.Unmarshal([]byte(`{"date":"2024-03-01"}`), &v)).To(Succeed())
			Expect(v.Date).To(Equal(d("2024-03-01")))
			Expect(json.Unmarshal([]byte(`{"date":"03/01/2024"}`), &v)).ToNot(Succeed())
		})
	})

	Describe("Scan and Value", func() {
		It("should accept text and time values", func() {
			var v common.Date
			Expect(v.Scan("2024-01-10")).To(Succeed())
			Expect(v).To(Equal(d("2024-01-10")))
			Expect(v.Scan([]byte("2024-01-11"))).To(Succeed())
			Expect(v).To(Equal(d("2024-01-11")))
			Expect(v.Scan(time.Date(2024, 1, 12, 0, 0, 0, 0, time.Local))).To(Succeed())
			Expect(v).To(Equal(d("2024-01-12")))
			Expect(v.Scan(12)).ToNot(Succeed())

			value, err := d("2024-01-10").Value()
			Expect(err).To(BeNil())
			Expect(value).To(Equal("2024-01-10"))
		})
	})

	Describe("DateRange", func() {
		It("should detect overlap of bounded ranges", func() {
			a := common.DateRange{Start: d("2024-01-01"), End: dp("2024-01-31")}
			Expect(a.Overlaps(common.DateRange{Start: d("2024-01-15"), End: dp("2024-02-15")})).To(BeTrue())
			Expect(a.Overlaps(common.DateRange{Start: d("2024-01-31"), End: dp("2024-02-15")})).To(BeTrue())
			Expect(a.Overlaps(common.DateRange{Start: d("2024-02-01"), End: dp("2024-02-15")})).To(BeFalse())
			Expect(a.Overlaps(common.DateRange{Start: d("2023-12-01"), End: dp("2023-12-31")})).To(BeFalse())
		})
		It("should treat a missing end as unbounded", func() {
			open := common.DateRange{Start: d("2024-01-01")}
			Expect(open.Overlaps(common.DateRange{Start: d("2030-01-01")})).To(BeTrue())
			Expect(open.Overlaps(common.DateRange{Start: d("2023-01-01"), End: dp("2023-12-31")})).To(BeFalse())
			Expect(common.DateRange{Start: d("2023-01-01"), End: dp("2024-01-01")}.Overlaps(open)).To(BeTrue())
		})
		It("should report covered days", func() {
			r := common.DateRange{Start: d("2024-01-01"), End: dp("2024-01-31")}
			Expect(r.Covers(d("2024-01-01"))).To(BeTrue())
			Expect(r.Covers(d("2024-01-31"))).To(BeTrue())
			Expect(r.Covers(d("2024-02-01"))).To(BeFalse())
			Expect(common.DateRange{Start: d("2024-01-01")}.Covers(d("2099-01-01"))).To(BeTrue())
		})
	})

	Describe("ParseMonth", func() {
		It("should return the first and last day", func() {
			first, last, err := common.ParseMonth("2024-02")
			Expect(err).To(BeNil())
			Expect(first).To(Equal(d("2024-02-01")))
			Expect(last).To(Equal(d("2024-02-29")))
			_, _, err = common.ParseMonth("2024-13")
			Expect(err).To(HaveOccurred())
		})
	})
})

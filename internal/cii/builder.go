// Package cii serializes validated invoices into the Factur-X Basic profile
// of the UN/CEFACT Cross Industry Invoice XML model and provides the advisory
// structural check run over the produced documents.
package cii

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/LL7Baucarre/facture/internal/invoice"
	"github.com/LL7Baucarre/facture/internal/siret"
)

// Namespace URIs bound on the document root.
const (
	NamespaceRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	NamespaceRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	NamespaceUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
	NamespaceQDT = "urn:un:unece:uncefact:data:standard:QualifiedDataType:100"
)

// GuidelineBasic identifies the EN 16931 compliant Factur-X Basic profile.
const GuidelineBasic = "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:basic"

const (
	typeCodeCommercialInvoice = "380"
	dateFormatCalendarDate    = "102" // CCYYMMDD
	unitCodeUnit              = "C62"
	taxTypeVAT                = "VAT"
	taxCategoryStandard       = "S"
	currencyEUR               = "EUR"
	schemeVATRegistration     = "VA"
	paymentTermsText          = "Paiement à réception de facture"
)

var centTolerance = decimal.New(1, -2)

// Build serializes a validated invoice into CII XML: UTF-8, XML prolog,
// indented. Element order is fixed; downstream schema acceptance depends on
// it. The BR-CO-15 rule (grand total = tax basis + tax total) is asserted
// after assembling the document and a violation aborts the build.
func Build(inv *invoice.Invoice) ([]byte, error) {
	doc := ciiDocument{
		RSM: NamespaceRSM,
		RAM: NamespaceRAM,
		UDT: NamespaceUDT,
		QDT: NamespaceQDT,
		Context: documentContext{
			Guideline: guidelineParameter{ID: GuidelineBasic},
		},
		Document: exchangedDocument{
			ID:       inv.Number,
			TypeCode: typeCodeCommercialInvoice,
			IssueDateTime: issueDateTime{
				DateTimeString: dateTimeString{
					Format: dateFormatCalendarDate,
					Value:  inv.IssueDate.Format("20060102"),
				},
			},
		},
	}

	doc.Transaction = tradeTransaction{
		Lines: buildLines(inv.Items),
		Agreement: headerAgreement{
			Seller: sellerParty(inv.Issuer),
			Buyer:  buyerParty(inv.Recipient),
		},
		Settlement: headerSettlement{
			CurrencyCode: currencyEUR,
			Taxes:        aggregateTaxes(inv.Items),
			PaymentTerms: tradePaymentTerms{Description: paymentTermsText},
			MonetarySummation: headerMonetarySummation{
				LineTotalAmount:     amount(inv.TotalHT),
				TaxBasisTotalAmount: amount(inv.TotalHT),
				TaxTotalAmount:      currencyAmount{CurrencyID: currencyEUR, Value: amount(inv.TotalVAT)},
				GrandTotalAmount:    amount(inv.TotalTTC),
				DuePayableAmount:    amount(inv.TotalTTC),
			},
		},
	}

	diff := inv.TotalTTC.Sub(inv.TotalHT.Add(inv.TotalVAT)).Abs()
	if diff.GreaterThan(centTolerance) {
		return nil, fmt.Errorf("le total TTC %s ne correspond pas à la base %s plus la TVA %s",
			amount(inv.TotalTTC), amount(inv.TotalHT), amount(inv.TotalVAT))
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal invoice xml: %w", err)
	}

	return append([]byte(xml.Header), out...), nil
}

func buildLines(items []invoice.LineItem) []tradeLineItem {
	lines := make([]tradeLineItem, 0, len(items))

	for i, item := range items {
		lines = append(lines, tradeLineItem{
			LineDocument: lineDocument{LineID: strconv.Itoa(i + 1)},
			Product:      tradeProduct{Name: item.Description},
			Agreement: lineAgreement{
				NetPrice: netPrice{ChargeAmount: amount(item.UnitPrice)},
			},
			Delivery: lineDelivery{
				BilledQuantity: unitQuantity{UnitCode: unitCodeUnit, Value: amount(item.Quantity)},
			},
			Settlement: lineSettlement{
				Tax: lineTax{
					TypeCode:     taxTypeVAT,
					CategoryCode: taxCategoryStandard,
					Rate:         amount(item.VATRate),
				},
				MonetarySummation: lineMonetarySummation{LineTotalAmount: amount(item.AmountHT)},
			},
		})
	}

	return lines
}

// aggregateTaxes emits one trade-tax block per distinct VAT rate, in order of
// first appearance across the items.
func aggregateTaxes(items []invoice.LineItem) []settlementTax {
	type bucket struct {
		rate  decimal.Decimal
		basis decimal.Decimal
		tax   decimal.Decimal
	}

	var order []string

	buckets := make(map[string]*bucket)

	for _, item := range items {
		key := amount(item.VATRate)

		b, ok := buckets[key]
		if !ok {
			b = &bucket{rate: item.VATRate}
			buckets[key] = b

			order = append(order, key)
		}

		b.basis = b.basis.Add(item.AmountHT)
		b.tax = b.tax.Add(item.VATAmount)
	}

	taxes := make([]settlementTax, 0, len(order))

	for _, key := range order {
		b := buckets[key]
		taxes = append(taxes, settlementTax{
			CalculatedAmount: amount(b.tax),
			TypeCode:         taxTypeVAT,
			BasisAmount:      amount(b.basis),
			CategoryCode:     taxCategoryStandard,
			Rate:             amount(b.rate),
		})
	}

	return taxes
}

func sellerParty(p invoice.Party) tradeParty {
	legalID := p.SIRET
	if legalID == "" {
		legalID = siret.PlaceholderSIRET
	}

	vat := p.VATNumber
	if vat == "" {
		vat = siret.VATNumber(legalID)
	}

	return tradeParty{
		Name:              p.Name,
		LegalOrganization: &legalOrganization{ID: legalID},
		Address:           partyAddress(p),
		TaxRegistration:   &taxRegistration{ID: schemeValue{SchemeID: schemeVATRegistration, Value: vat}},
	}
}

func buyerParty(p invoice.Party) tradeParty {
	return tradeParty{
		Name:    p.Name,
		Address: partyAddress(p),
	}
}

func partyAddress(p invoice.Party) postalAddress {
	return postalAddress{
		PostcodeCode: p.PostalCode,
		LineOne:      p.Address,
		CityName:     p.City,
		CountryID:    "FR",
	}
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Document structure. Prefixes are baked into the element names; the four
// xmlns attributes on the root bind them.

type ciiDocument struct {
	XMLName xml.Name `xml:"rsm:CrossIndustryInvoice"`
	RSM     string   `xml:"xmlns:rsm,attr"`
	RAM     string   `xml:"xmlns:ram,attr"`
	UDT     string   `xml:"xmlns:udt,attr"`
	QDT     string   `xml:"xmlns:qdt,attr"`

	Context     documentContext   `xml:"rsm:ExchangedDocumentContext"`
	Document    exchangedDocument `xml:"rsm:ExchangedDocument"`
	Transaction tradeTransaction  `xml:"rsm:SupplyChainTradeTransaction"`
}

type documentContext struct {
	Guideline guidelineParameter `xml:"ram:GuidelineSpecifiedDocumentContextParameter"`
}

type guidelineParameter struct {
	ID string `xml:"ram:ID"`
}

type exchangedDocument struct {
	ID            string        `xml:"ram:ID"`
	TypeCode      string        `xml:"ram:TypeCode"`
	IssueDateTime issueDateTime `xml:"ram:IssueDateTime"`
}

type issueDateTime struct {
	DateTimeString dateTimeString `xml:"udt:DateTimeString"`
}

type dateTimeString struct {
	Format string `xml:"format,attr"`
	Value  string `xml:",chardata"`
}

type tradeTransaction struct {
	Lines      []tradeLineItem  `xml:"ram:IncludedSupplyChainTradeLineItem"`
	Agreement  headerAgreement  `xml:"ram:ApplicableHeaderTradeAgreement"`
	Delivery   headerDelivery   `xml:"ram:ApplicableHeaderTradeDelivery"`
	Settlement headerSettlement `xml:"ram:ApplicableHeaderTradeSettlement"`
}

type tradeLineItem struct {
	LineDocument lineDocument   `xml:"ram:AssociatedDocumentLineDocument"`
	Product      tradeProduct   `xml:"ram:SpecifiedTradeProduct"`
	Agreement    lineAgreement  `xml:"ram:SpecifiedLineTradeAgreement"`
	Delivery     lineDelivery   `xml:"ram:SpecifiedLineTradeDelivery"`
	Settlement   lineSettlement `xml:"ram:SpecifiedLineTradeSettlement"`
}

type lineDocument struct {
	LineID string `xml:"ram:LineID"`
}

type tradeProduct struct {
	Name string `xml:"ram:Name"`
}

type lineAgreement struct {
	NetPrice netPrice `xml:"ram:NetPriceProductTradePrice"`
}

type netPrice struct {
	ChargeAmount string `xml:"ram:ChargeAmount"`
}

type lineDelivery struct {
	BilledQuantity unitQuantity `xml:"ram:BilledQuantity"`
}

type unitQuantity struct {
	UnitCode string `xml:"unitCode,attr"`
	Value    string `xml:",chardata"`
}

type lineSettlement struct {
	Tax               lineTax               `xml:"ram:ApplicableTradeTax"`
	MonetarySummation lineMonetarySummation `xml:"ram:SpecifiedTradeSettlementLineMonetarySummation"`
}

type lineTax struct {
	TypeCode     string `xml:"ram:TypeCode"`
	CategoryCode string `xml:"ram:CategoryCode"`
	Rate         string `xml:"ram:RateApplicablePercent"`
}

type lineMonetarySummation struct {
	LineTotalAmount string `xml:"ram:LineTotalAmount"`
}

type headerAgreement struct {
	Seller tradeParty `xml:"ram:SellerTradeParty"`
	Buyer  tradeParty `xml:"ram:BuyerTradeParty"`
}

type tradeParty struct {
	Name              string             `xml:"ram:Name"`
	LegalOrganization *legalOrganization `xml:"ram:SpecifiedLegalOrganization,omitempty"`
	Address           postalAddress      `xml:"ram:PostalTradeAddress"`
	TaxRegistration   *taxRegistration   `xml:"ram:SpecifiedTaxRegistration,omitempty"`
}

type legalOrganization struct {
	ID string `xml:"ram:ID"`
}

type postalAddress struct {
	PostcodeCode string `xml:"ram:PostcodeCode"`
	LineOne      string `xml:"ram:LineOne"`
	CityName     string `xml:"ram:CityName"`
	CountryID    string `xml:"ram:CountryID"`
}

type taxRegistration struct {
	ID schemeValue `xml:"ram:ID"`
}

type schemeValue struct {
	SchemeID string `xml:"schemeID,attr"`
	Value    string `xml:",chardata"`
}

type headerDelivery struct{}

type headerSettlement struct {
	CurrencyCode      string                  `xml:"ram:InvoiceCurrencyCode"`
	Taxes             []settlementTax         `xml:"ram:ApplicableTradeTax"`
	PaymentTerms      tradePaymentTerms       `xml:"ram:SpecifiedTradePaymentTerms"`
	MonetarySummation headerMonetarySummation `xml:"ram:SpecifiedTradeSettlementHeaderMonetarySummation"`
}

type settlementTax struct {
	CalculatedAmount string `xml:"ram:CalculatedAmount"`
	TypeCode         string `xml:"ram:TypeCode"`
	BasisAmount      string `xml:"ram:BasisAmount"`
	CategoryCode     string `xml:"ram:CategoryCode"`
	Rate             string `xml:"ram:RateApplicablePercent"`
}

type tradePaymentTerms struct {
	Description string `xml:"ram:Description"`
}

type headerMonetarySummation struct {
	LineTotalAmount     string         `xml:"ram:LineTotalAmount"`
	TaxBasisTotalAmount string         `xml:"ram:TaxBasisTotalAmount"`
	TaxTotalAmount      currencyAmount `xml:"ram:TaxTotalAmount"`
	GrandTotalAmount    string         `xml:"ram:GrandTotalAmount"`
	DuePayableAmount    string         `xml:"ram:DuePayableAmount"`
}

type currencyAmount struct {
	CurrencyID string `xml:"currencyID,attr"`
	Value      string `xml:",chardata"`
}

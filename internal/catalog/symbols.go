package catalog

import "github.com/Bhanuprakashgu/stock-analyzer/internal/model"

// nse is the static NSE universe in display order.
var nse = []model.Symbol{
	{Symbol: "RELIANCE.NS", Name: "Reliance Industries Ltd."},
	{Symbol: "TCS.NS", Name: "Tata Consultancy Services Ltd."},
	{Symbol: "HDFCBANK.NS", Name: "HDFC Bank Ltd."},
	{Symbol: "INFY.NS", Name: "Infosys Ltd."},
	{Symbol: "HINDUNILVR.NS", Name: "Hindustan Unilever Ltd."},
	{Symbol: "ICICIBANK.NS", Name: "ICICI Bank Ltd."},
	{Symbol: "SBIN.NS", Name: "State Bank of India"},
	{Symbol: "BAJFINANCE.NS", Name: "Bajaj Finance Ltd."},
	{Symbol: "BHARTIARTL.NS", Name: "Bharti Airtel Ltd."},
	{Symbol: "KOTAKBANK.NS", Name: "Kotak Mahindra Bank Ltd."},
	{Symbol: "ITC.NS", Name: "ITC Ltd."},
	{Symbol: "LT.NS", Name: "Larsen & Toubro Ltd."},
	{Symbol: "HCLTECH.NS", Name: "HCL Technologies Ltd."},
	{Symbol: "ASIANPAINT.NS", Name: "Asian Paints Ltd."},
	{Symbol: "AXISBANK.NS", Name: "Axis Bank Ltd."},
	{Symbol: "MARUTI.NS", Name: "Maruti Suzuki India Ltd."},
	{Symbol: "SUNPHARMA.NS", Name: "Sun Pharmaceutical Industries Ltd."},
	{Symbol: "TATAMOTORS.NS", Name: "Tata Motors Ltd."},
	{Symbol: "TITAN.NS", Name: "Titan Company Ltd."},
	{Symbol: "BAJAJFINSV.NS", Name: "Bajaj Finserv Ltd."},
	{Symbol: "WIPRO.NS", Name: "Wipro Ltd."},
	{Symbol: "ADANIENT.NS", Name: "Adani Enterprises Ltd."},
	{Symbol: "NTPC.NS", Name: "NTPC Ltd."},
	{Symbol: "POWERGRID.NS", Name: "Power Grid Corporation of India Ltd."},
	{Symbol: "ULTRACEMCO.NS", Name: "UltraTech Cement Ltd."},
	{Symbol: "ADANIPORTS.NS", Name: "Adani Ports and Special Economic Zone Ltd."},
	{Symbol: "JSWSTEEL.NS", Name: "JSW Steel Ltd."},
	{Symbol: "TECHM.NS", Name: "Tech Mahindra Ltd."},
	{Symbol: "GRASIM.NS", Name: "Grasim Industries Ltd."},
	{Symbol: "ONGC.NS", Name: "Oil and Natural Gas Corporation Ltd."},
	{Symbol: "TATASTEEL.NS", Name: "Tata Steel Ltd."},
	{Symbol: "APOLLOHOSP.NS", Name: "Apollo Hospitals Enterprise Ltd."},
	{Symbol: "NESTLEIND.NS", Name: "Nestle India Ltd."},
	{Symbol: "DIVISLAB.NS", Name: "Divi's Laboratories Ltd."},
	{Symbol: "COALINDIA.NS", Name: "Coal India Ltd."},
	{Symbol: "HINDALCO.NS", Name: "Hindalco Industries Ltd."},
	{Symbol: "BAJAJ-AUTO.NS", Name: "Bajaj Auto Ltd."},
	{Symbol: "TATACONSUM.NS", Name: "Tata Consumer Products Ltd."},
	{Symbol: "UPL.NS", Name: "UPL Ltd."},
	{Symbol: "INDUSINDBK.NS", Name: "IndusInd Bank Ltd."},
	{Symbol: "CIPLA.NS", Name: "Cipla Ltd."},
	{Symbol: "DRREDDY.NS", Name: "Dr. Reddy's Laboratories Ltd."},
	{Symbol: "M&M.NS", Name: "Mahindra & Mahindra Ltd."},
	{Symbol: "EICHERMOT.NS", Name: "Eicher Motors Ltd."},
	{Symbol: "HEROMOTOCO.NS", Name: "Hero MotoCorp Ltd."},
	{Symbol: "BRITANNIA.NS", Name: "Britannia Industries Ltd."},
	{Symbol: "JINDALSTEL.NS", Name: "Jindal Steel & Power Ltd."},
	{Symbol: "HAVELLS.NS", Name: "Havells India Ltd."},
	{Symbol: "BANKBARODA.NS", Name: "Bank of Baroda"},
	{Symbol: "PNB.NS", Name: "Punjab National Bank"},
	{Symbol: "VEDL.NS", Name: "Vedanta Ltd."},
	{Symbol: "SAIL.NS", Name: "Steel Authority of India Ltd."},
	{Symbol: "AMBUJACEM.NS", Name: "Ambuja Cements Ltd."},
	{Symbol: "BIOCON.NS", Name: "Biocon Ltd."},
	{Symbol: "DABUR.NS", Name: "Dabur India Ltd."},
	{Symbol: "GODREJCP.NS", Name: "Godrej Consumer Products Ltd."},
	{Symbol: "MCDOWELL-N.NS", Name: "United Spirits Ltd."},
	{Symbol: "GAIL.NS", Name: "GAIL (India) Ltd."},
	{Symbol: "PFC.NS", Name: "Power Finance Corporation Ltd."},
	{Symbol: "RECLTD.NS", Name: "REC Ltd."},
	{Symbol: "INDIGO.NS", Name: "InterGlobe Aviation Ltd."},
	{Symbol: "ADANIGREEN.NS", Name: "Adani Green Energy Ltd."},
	{Symbol: "AUROPHARMA.NS", Name: "Aurobindo Pharma Ltd."},
	{Symbol: "ZYDUSLIFE.NS", Name: "Zydus Lifesciences Ltd."},
	{Symbol: "LUPIN.NS", Name: "Lupin Ltd."},
	{Symbol: "TORNTPHARM.NS", Name: "Torrent Pharmaceuticals Ltd."},
	{Symbol: "BERGEPAINT.NS", Name: "Berger Paints India Ltd."},
	{Symbol: "IOC.NS", Name: "Indian Oil Corporation Ltd."},
	{Symbol: "BPCL.NS", Name: "Bharat Petroleum Corporation Ltd."},
	{Symbol: "HPCL.NS", Name: "Hindustan Petroleum Corporation Ltd."},
	{Symbol: "PIDILITIND.NS", Name: "Pidilite Industries Ltd."},
	{Symbol: "SIEMENS.NS", Name: "Siemens Ltd."},
	{Symbol: "ABB.NS", Name: "ABB India Ltd."},
	{Symbol: "BOSCHLTD.NS", Name: "Bosch Ltd."},
	{Symbol: "ABBOTINDIA.NS", Name: "Abbott India Ltd."},
	{Symbol: "SHREECEM.NS", Name: "Shree Cement Ltd."},
	{Symbol: "MPHASIS.NS", Name: "Mphasis Ltd."},
	{Symbol: "CANBK.NS", Name: "Canara Bank"},
	{Symbol: "NYKAA.NS", Name: "FSN E-Commerce Ventures Ltd."},
	{Symbol: "PAYTM.NS", Name: "One 97 Communications Ltd."},
	{Symbol: "ZOMATO.NS", Name: "Zomato Ltd."},
	{Symbol: "PGHH.NS", Name: "Procter & Gamble Hygiene and Health Care Ltd."},
	{Symbol: "MARICO.NS", Name: "Marico Ltd."},
	{Symbol: "COLPAL.NS", Name: "Colgate-Palmolive (India) Ltd."},
	{Symbol: "DLF.NS", Name: "DLF Ltd."},
	{Symbol: "LICI.NS", Name: "Life Insurance Corporation of India"},
	{Symbol: "SBILIFE.NS", Name: "SBI Life Insurance Company Ltd."},
	{Symbol: "HDFCLIFE.NS", Name: "HDFC Life Insurance Company Ltd."},
	{Symbol: "ICICIGI.NS", Name: "ICICI Lombard General Insurance Company Ltd."},
	{Symbol: "BAJAJHLDNG.NS", Name: "Bajaj Holdings & Investment Ltd."},
	{Symbol: "GODREJPROP.NS", Name: "Godrej Properties Ltd."},
	{Symbol: "DHFL.NS", Name: "Dewan Housing Finance Corporation Ltd."},
	{Symbol: "YESBANK.NS", Name: "Yes Bank Ltd."},
	{Symbol: "IDEA.NS", Name: "Vodafone Idea Ltd."},
	{Symbol: "RBLBANK.NS", Name: "RBL Bank Ltd."},
	{Symbol: "JUBLFOOD.NS", Name: "Jubilant FoodWorks Ltd."},
	{Symbol: "MRF.NS", Name: "MRF Ltd."},
	{Symbol: "PAGEIND.NS", Name: "Page Industries Ltd."},
	{Symbol: "TRENT.NS", Name: "Trent Ltd."},
	{Symbol: "ASTRAL.NS", Name: "Astral Ltd."},
	{Symbol: "FEDERALBNK.NS", Name: "The Federal Bank Ltd."},
	{Symbol: "HAL.NS", Name: "Hindustan Aeronautics Ltd."},
	{Symbol: "BEL.NS", Name: "Bharat Electronics Ltd."},
	{Symbol: "NMDC.NS", Name: "NMDC Ltd."},
}
